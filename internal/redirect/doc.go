// Package redirect resolves a request path to a stored redirect rule.
//
// Resolution runs in stages:
//
//  1. the path is normalised into host, path and query (urlnorm)
//  2. the effective version and host-only policy are resolved, either from
//     the request or from the store
//  3. exact-path candidates are fetched (optionally slash tolerant), filtered
//     by version, host policy and time window, and tie-broken
//  4. when no single candidate remains, regex rules are tried in store order
//  5. the matched rule's operations rewrite the target's query string
//
// A successful resolution also bumps the rule's lastAccessed timestamp in the
// background, at most once per touch interval.
package redirect
