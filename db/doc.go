/*

Package db is the blob store behind hashbak: a directory of
write-once files, each named after the SHA-256 digest of its content.

Vocabulary:

- dir: the store root; the backup destination
- hash: lowercase hex SHA-256 digest of a blob, always 64 characters
- shard: the first two characters of hash; one subdirectory per shard
	keeps directory sizes small (at most 256 shards)
- relpath: shard/hash, relative to dir
- abspath: dir/shard/hash
- blob: a copy of one source file's bytes, stored at abspath and never
	rewritten
- manifest: the text file at dir/manifest mapping original paths to
	hashes; owned by the hashbak package, not by db
- lock: dir/.lock, held by a backup run for its whole duration

Nothing other than shard directories containing hash-named files is
considered part of the blob set.  Garbage collection only ever sees
what ListAll returns.

*/

package db
