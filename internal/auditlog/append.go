package auditlog

// Append opens the default repository, saves one entry, and closes it.
// Commands use it for best-effort run recording: a failure to persist
// history should never fail the run itself.
func Append(entry *AuditEntry) error {
	repo, err := Open()
	if err != nil {
		return err
	}
	defer repo.Close()
	return repo.Save(entry)
}
