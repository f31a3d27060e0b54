// Package clientip resolves the originating client address of a request
// served behind reverse proxies, trying proxy headers in priority order
// before the TCP peer address.
package clientip
