package repository

import (
	"github.com/jmoiron/sqlx"
)

// Repos provides data access over the relational store. All reads of derived
// state (effective flag, latest reading) are queries, never cached cells.
type Repos struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repos { return &Repos{db: db} }
