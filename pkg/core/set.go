package core

// insertUnique appends key to set if it is not already present and the
// cap has not been reached. It mirrors the repeated add-with-cap pattern in
// the reference implementation (add_delegated_user, add_to_whitelist,
// add_signer) with one generic helper instead of one method per set.
func insertUnique(set []PubKey, key PubKey, cap int, dup, full ErrorKind) ([]PubKey, error) {
	for _, k := range set {
		if k == key {
			return set, newErr(dup, "key already present")
		}
	}
	if len(set) >= cap {
		return set, newErr(full, "cardinality cap reached")
	}
	out := make([]PubKey, len(set), len(set)+1)
	copy(out, set)
	return append(out, key), nil
}

// removeExisting removes key from set, failing with absent if not found.
func removeExisting(set []PubKey, key PubKey, absent ErrorKind) ([]PubKey, error) {
	idx := -1
	for i, k := range set {
		if k == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return set, newErr(absent, "key not present")
	}
	out := make([]PubKey, 0, len(set)-1)
	out = append(out, set[:idx]...)
	out = append(out, set[idx+1:]...)
	return out, nil
}

func containsKey(set []PubKey, key PubKey) bool {
	for _, k := range set {
		if k == key {
			return true
		}
	}
	return false
}

func cloneKeys(set []PubKey) []PubKey {
	if set == nil {
		return nil
	}
	out := make([]PubKey, len(set))
	copy(out, set)
	return out
}
