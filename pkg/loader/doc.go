// Package loader resolves the application shown in "app" preview mode.
//
// A Chain tries its tiers in order and stops at the first success:
//
//  1. SessionTier reads the entry file from the active session's workspace
//     and points the preview at the session bundle (E211 on failure).
//  2. OriginalTier reads the entry file of the unedited package from a
//     PackageStore, either a directory or an S3 prefix (E212).
//  3. PlaceholderTier scans whatever source text is reachable for
//     structural hints and synthesizes a stand-in UI (E213).
//
// A failed tier has no side effects. Every failure is logged with the tier
// name and code so the three cases can be told apart. When all tiers fail
// the Result carries an E210 error wrapping the last tier's error.
package loader
