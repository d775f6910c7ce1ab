package service

import (
	"context"
	"fmt"

	"github.com/RubachokBoss/submission-report/internal/errs"
)

const (
	DefaultPageSize = 50
	// DefaultChunkSize keeps the repeated userSerials query under the
	// platform's URL length limit.
	DefaultChunkSize = 18
	DefaultMaxPages  = 1000
)

type Page[T any] struct {
	Items      []T
	TotalPages int
}

type PageFunc[T any] func(ctx context.Context, page, pageSize int) (Page[T], error)

type BatchFunc[T any] func(ctx context.Context, keys []string) ([]T, error)

// FetchAllPages walks pages 1..TotalPages sequentially. The total is re-read
// from every response and a missing or zero total counts as one page. The
// first failing page aborts the walk and no partial result is returned.
func FetchAllPages[T any](ctx context.Context, fetch PageFunc[T], pageSize, maxPages int) ([]T, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var results []T
	totalPages := 1
	for page := 1; page <= totalPages; page++ {
		resp, err := fetch(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		totalPages = resp.TotalPages
		if totalPages < 1 {
			totalPages = 1
		}
		if totalPages > maxPages {
			return nil, &errs.ProtocolError{
				Endpoint: "pagination",
				Err:      fmt.Errorf("server reported %d pages, limit is %d", totalPages, maxPages),
			}
		}

		results = append(results, resp.Items...)
	}

	return results, nil
}

// FetchByKeys splits keys into consecutive chunks of at most chunkSize and
// fetches them one after another, preserving key order in the result.
func FetchByKeys[T any](ctx context.Context, keys []string, chunkSize int, fetch BatchFunc[T]) ([]T, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var results []T
	for start := 0; start < len(keys); start += chunkSize {
		end := start + chunkSize
		if end > len(keys) {
			end = len(keys)
		}

		items, err := fetch(ctx, keys[start:end:end])
		if err != nil {
			return nil, fmt.Errorf("chunk %d-%d: %w", start, end, err)
		}
		results = append(results, items...)
	}

	return results, nil
}
