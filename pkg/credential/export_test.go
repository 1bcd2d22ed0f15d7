package credential

// DummyHash exposes the hash compared on logins for unknown accounts.
func DummyHash(m Manager) []byte {
	return m.(*service).dummyHash()
}
