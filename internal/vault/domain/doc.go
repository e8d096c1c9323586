// Package domain holds the vault terminal's session model: stages, the
// persisted session snapshot, riddles and answer normalization.
//
// Nothing here knows about rendering, audio or storage engines. The
// application package drives transitions and talks to those collaborators
// through ports.
package domain
