// Package searchtitles implements the Title Search feature.
//
// This feature streams search results through the plain strategy: every
// search goes straight to the catalog API and nothing is cached, since
// search results are too volatile and too keyed to be worth cache rows.
//
// Search text shorter than three characters short-circuits to an empty
// result before the gateway is touched, which the reducer's emptiness rule
// renders as Empty; the screen shows the same "nothing found" affordance it
// would for a real empty result.
package searchtitles
