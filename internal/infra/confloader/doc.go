// Package confloader loads layered configuration and watches files.
//
// Loader merges, lowest to highest priority:
//
//  1. Default values
//  2. Configuration file (YAML)
//  3. Environment variables (COMPANYLOCK_ prefix)
//  4. Command-line flags
//
// Environment keys nest with a double underscore, so underscores inside
// a key survive: COMPANYLOCK_SESSION__KEY_FILE sets session.key_file and
// COMPANYLOCK_API_BASE sets api_base.
//
// Watcher reports changes to individual files using fsnotify. It
// watches the parent directory so that atomic rename-into-place writes
// and removals are seen.
package confloader
