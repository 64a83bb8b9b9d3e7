package app

import "github.com/vango-dev/ssr/pkg/store"

// Fixtures returns the demo items served by the memory source.
func Fixtures() map[string]store.Item {
	return map[string]store.Item{
		"1": {
			"id":    1,
			"title": "Server-side rendering with asyncData",
			"by":    "ssr",
			"url":   "https://ssr.vuejs.org/guide/data.html",
		},
		"2": {
			"id":    2,
			"title": "Hydrating the initial state <safely>",
			"by":    "ssr",
		},
	}
}
