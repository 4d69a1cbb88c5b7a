// Package feed turns paginated JSON HTTP endpoints into demand-paced
// streams. It is the fetch layer for pipelines that replay and fan out
// remote records: the subscriber's demand, not the server's page size,
// decides how fast pages are pulled.
//
// # Endpoint Contract
//
// Sources expect a cursor-paginated envelope:
//
//	{
//	    "items": [ ... ],
//	    "next": "opaque-cursor"
//	}
//
// The source calls the base URL with limit and cursor query parameters and
// follows the next cursor until it is empty, which finishes the stream.
// HTTP transport errors, non-200 statuses, and malformed JSON fail the
// stream with a wrapped sentinel error.
//
// # Usage
//
//	import (
//	    "github.com/dmitrymomot/streamkit"
//	    "github.com/dmitrymomot/streamkit/core/feed"
//	)
//
//	var cfg feed.Config
//	config.MustLoad(&cfg)
//
//	source, err := feed.NewSource[feed.Record](cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Nothing is fetched until a subscriber asks for values.
//	shared := streamkit.Replay(source, 32)
//	shared.Attach(streamkit.NewSink(func(rec feed.Record) streamkit.Demand {
//	    fmt.Println(rec.Title)
//	    return streamkit.None()
//	}, nil))
//
// # Demand Pacing
//
// Items are delivered one at a time and only while the subscriber has
// outstanding demand. A fetched page that outruns demand is held in memory;
// the next fetch happens only after the held items are consumed. Wrapping
// the source with streamkit.Replay shares one fetch pass among any number
// of subscribers.
//
// # Custom Record Types
//
// Sources are generic over the decoded item type. Any type with JSON tags
// matching the endpoint's items works:
//
//	type Price struct {
//	    Symbol string  `json:"symbol"`
//	    Value  float64 `json:"value"`
//	}
//
//	source, err := feed.NewSource[Price](cfg)
//
// # Error Handling
//
// The package defines sentinel errors checkable with errors.Is():
//
//   - ErrEmptyBaseURL: configuration has no base URL
//   - ErrInvalidBaseURL: base URL cannot be parsed
//   - ErrRequestFailed: transport-level request failure
//   - ErrUnexpectedStatus: endpoint returned a non-200 status
//   - ErrDecodeFailed: response body is not a valid envelope
//
// Failures reach subscribers through the stream's terminal signal, so one
// error handling path covers both transport and protocol problems.
package feed
