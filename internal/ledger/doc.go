// Package ledger turns free-form payment messages into ledger entries.
//
// A message is read line by line. Lines naming a group (store) switch the
// current group; the lines that follow are read as "label amount" rows and
// belong to that group until the next switch. Lines that are neither are
// ignored, so chat noise around the instructions does no harm.
package ledger
