package scanner

import "golang.org/x/net/html"

// MutationRecord describes one structural change of a Document.
type MutationRecord struct {
	Target       *html.Node
	AddedNodes   []*html.Node
	RemovedNodes []*html.Node
}

// MutationObserver receives batches of records after each host insertion.
type MutationObserver interface {
	OnMutation(batch []MutationRecord)
}

// ObserverFunc adapts a function to MutationObserver.
type ObserverFunc func(batch []MutationRecord)

func (f ObserverFunc) OnMutation(batch []MutationRecord) { f(batch) }

// addsNodes reports whether any record in batch inserted nodes.
func addsNodes(batch []MutationRecord) bool {
	for _, r := range batch {
		if len(r.AddedNodes) > 0 {
			return true
		}
	}
	return false
}
