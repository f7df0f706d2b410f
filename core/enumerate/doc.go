// Package enumerate produces lazy object sequences from bucket listings.
//
// An Enumerator pulls listing pages through the storage adapter, guarded
// by the retry policy, and yields filtered Object descriptors one at a
// time. Enumeration is restartable: failures carry the continuation token
// of the page that could not be fetched, and NewFromCursor resumes from
// such a token.
package enumerate
