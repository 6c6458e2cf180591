package repository

// maxInValues bounds every IN predicate sent to the database.
const maxInValues = 50

// chunk splits ids into slices of at most maxInValues elements.
func chunk(ids []string) [][]string {
	if len(ids) == 0 {
		return nil
	}

	var chunks [][]string
	for len(ids) > maxInValues {
		chunks = append(chunks, ids[:maxInValues])
		ids = ids[maxInValues:]
	}
	return append(chunks, ids)
}
