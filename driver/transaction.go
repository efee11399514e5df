package driver

// The backend has no transactional semantics - each statement is an
// independent call. Transaction bracketing is accepted as a no-op rather
// than rejected, so generic transactional client code runs unmodified.

// Begin accepts a transaction start as a no-op
func (c *Conn) Begin(state *ConnState) Outcome {
	return OK(state, EmptyResult())
}

// Commit accepts a transaction commit as a no-op
func (c *Conn) Commit(state *ConnState) Outcome {
	return OK(state, EmptyResult())
}

// Rollback accepts a transaction rollback as a no-op
func (c *Conn) Rollback(state *ConnState) Outcome {
	return OK(state, EmptyResult())
}

// Close accepts closing a transaction bracket as a no-op
func (c *Conn) Close(state *ConnState) Outcome {
	return OK(state, EmptyResult())
}
