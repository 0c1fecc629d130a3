// Package relevancy re-ranks federated search results against the query that
// produced them.
//
// Every result is scored in two passes. The first matches the query against
// each configured field: whole-field and best-sentence similarity, positional
// matches of query n-grams with windowed similarity, exclusion terms
// (NOT term, -term) and highlighting. The second normalizes positional matches
// by the median field length across all results, boosts them by provider rank
// and sums them into one score per result. Every score carries an explanation
// of the matches it was built from.
//
// # Scoring only
//
//	client, _ := relevancy.New(ctx)
//	out, err := client.Process(ctx, []relevancy.ResultSet{{
//	    Provider: "web",
//	    Rank:     1,
//	    Results: []relevancy.Result{
//	        {Fields: map[string]any{"title": "Electric cars in 2025", "body": "..."}},
//	    },
//	}}, "electric cars NOT hybrid")
//
// # Persisted searches
//
//	client, _ := relevancy.New(ctx,
//	    relevancy.WithValkey("localhost:6379", ""),
//	    relevancy.WithEmbedder(myEmbedder),
//	    relevancy.WithFields(
//	        relevancy.Field{Name: "title", Weight: 1.5},
//	        relevancy.Field{Name: "body", Weight: 1},
//	    ),
//	)
//	_ = client.Save(ctx, relevancy.ResultSet{SearchID: id, Provider: "news", Rank: 2, Results: results})
//	out, _ := client.Rerank(ctx, id, "electric cars")
//
// Without WithEmbedder the client uses an offline feature-hashing embedder.
package relevancy
