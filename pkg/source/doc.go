// Package source provides the item fetchers behind the store's fetchItem
// action: an in-memory fixture source, a JSON-over-HTTP source in the style
// of the Hacker News item API, and an S3 object source that reads JSON or
// msgpack encoded items.
//
// Every source reports a missing item with an error matching ErrNotFound.
// Sources never retry.
package source
