package identity

// SeedRawState is a test helper that overwrites the stored wallet and
// positions blobs of a user held by the in-memory repository. A nil slice
// stands for a NULL column.
func SeedRawState(repo Repository, id int64, walletJSON, positionsJSON []byte) {
	if mem, ok := repo.(*memoryRepository); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if row, ok := mem.byID[id]; ok {
			row.wallet = walletJSON
			row.positions = positionsJSON
		}
	}
}

// RemoveUser is a test helper that deletes a user from the in-memory
// repository, simulating a row that vanished behind a live session.
func RemoveUser(repo Repository, id int64) {
	if mem, ok := repo.(*memoryRepository); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if row, ok := mem.byID[id]; ok {
			delete(mem.byID, id)
			delete(mem.byEmail, row.user.Email)
		}
	}
}
