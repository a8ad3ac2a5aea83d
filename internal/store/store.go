// Package store holds the relational entity store: admins, inventory items,
// users and borrowing records, the quantity accounting that ties items to
// their loans, and the read-only reports derived from them.
//
// Every function takes the storage handle explicitly. Operations that touch
// more than one row run in a single transaction.
package store

import sqldb "github.com/erazemk/solskiinventar/internal/db"

// dbtx is either the database or an open transaction.
type dbtx = sqldb.DBTX
