// Package services contains the application core: the chunk store, the
// course-name resolver, the retrieval tools, the tool-calling generator
// and the assistant facade that composes them.
package services
