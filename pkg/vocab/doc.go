// Package vocab holds the fixed vocabularies consumed by the spawn builder:
// standard element tag names, void (self-closing) tags, inline tags,
// boolean attributes, value-bearing tags and recognized event types.
//
// The tables are process-wide and read-only. They are used to decide how a
// tag is created, how it is serialized and whether an event name is known;
// they never reject input on their own.
package vocab
