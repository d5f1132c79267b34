// Package presence provides the directory mapping player identities to
// live connection handles.
//
// The Directory exclusively owns the identity-to-handle map. Everything
// else reads through Resolve, which never returns nil: an offline or
// unknown identity resolves to the no-op NullHandle, so outbound emit
// sites never need to care whether the recipient is connected. A second
// bind for the same identity replaces the previous handle, which is how
// reconnects take over from dead connections.
package presence
