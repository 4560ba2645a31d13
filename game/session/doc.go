// Package session stores knight sessions for the knight path server.
//
// A session is one knight anchored at a start square together with the log
// of queries answered for it. The package implements:
//   - Thread-safe session storage and retrieval
//   - Short random session IDs, matched case-insensitively
//   - Query logging with sequential query numbers
//   - Optional write-through JSON file persistence
//   - Expiry of sessions that have not been accessed recently
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//
//	sess, err := manager.Create("", knight.Position{X: 0, Y: 0})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Retrieve existing session
//	sess, err = manager.Get(sess.ID)
//
// Persistence:
//
// FilePersistence writes one indented JSON file per session, named after the
// session ID. The pathfinder is rebuilt from the stored start square on load.
package session
