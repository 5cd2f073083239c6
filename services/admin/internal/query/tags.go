package query

// ListID is the id of the tag a list query provides for itself.
const ListID = "LIST"

// Tag labels cached results so a mutation can invalidate them in bulk.
type Tag struct {
	Type string
	ID   string
}

func (t Tag) String() string {
	if t.ID == "" {
		return t.Type
	}
	return t.Type + ":" + t.ID
}

// KeySet is a set of cache keys.
type KeySet map[string]struct{}

func (s KeySet) clone() KeySet {
	out := make(KeySet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// reindex moves key from the old tags to the new ones without touching the
// sets of the previous index.
func reindex(provided map[Tag]KeySet, key string, old, next []Tag) map[Tag]KeySet {
	out := make(map[Tag]KeySet, len(provided)+len(next))
	for tag, set := range provided {
		out[tag] = set
	}

	for _, tag := range old {
		set, ok := out[tag]
		if !ok {
			continue
		}
		set = set.clone()
		delete(set, key)
		if len(set) == 0 {
			delete(out, tag)
			continue
		}
		out[tag] = set
	}

	for _, tag := range next {
		set := out[tag].clone()
		set[key] = struct{}{}
		out[tag] = set
	}

	return out
}
