/*

Hashbak is a content-addressed backup tool.  A backup copies every file
under one or more source trees into a destination directory, storing
each distinct content once, in a file named after its SHA-256 digest,
and writes a manifest mapping each original path to its digest.  A
restore reads the manifest and copies blobs back out to their original
relative paths.

Vocabulary:

- source: a directory (or file) given to Backup
- digest: SHA-256 of a file's content, 64 lowercase hex characters
	on disk
- blob: the stored copy of one content, at dest/<digest[:2]>/<digest>;
	see package db
- manifest: dest/manifest, one "digest<TAB>path" line per file, sorted
	by path
- seen table: digest -> first path recorded under it during one
	backup run; used to detect collisions and to decide which blobs
	survive garbage collection
- collision: two files with different content and the same digest;
	aborts the run

Every backup run rescans and rehashes everything and finishes by
deleting every blob its own manifest doesn't reference, so the blob
set always matches the most recent manifest.

*/

package hashbak
