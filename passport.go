package account

// mergePaths appends every incoming path not already present, preserving
// first-seen order. Duplicates inside the incoming batch collapse too.
func mergePaths(existing []string, incoming []string) []string {
	merged := make([]string, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, p := range existing {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		merged = append(merged, p)
	}

	for _, p := range incoming {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		merged = append(merged, p)
	}

	return merged
}

// removePaths drops every listed path if present. Removing an absent path is
// a no-op, not an error.
func removePaths(existing []string, toRemove []string) []string {
	if len(existing) == 0 {
		return []string{}
	}

	drop := make(map[string]struct{}, len(toRemove))
	for _, p := range toRemove {
		drop[p] = struct{}{}
	}

	kept := make([]string, 0, len(existing))
	for _, p := range existing {
		if _, ok := drop[p]; ok {
			continue
		}
		kept = append(kept, p)
	}

	return kept
}
