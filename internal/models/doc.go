// Package models defines the core domain models for Splitbook.
//
// # Models
//
//   - Group: a set of members sharing expenses in one currency
//   - Member: one user's membership in a group (role, joined time)
//   - Expense: money paid by one member, split among members
//   - Split: one member's share of an expense
//   - Settlement: a planned or completed transfer that nets out debt
//   - User: a registered account (service layer only; the ledger core
//     sees opaque user ids and never touches credentials)
//
// # Design principles
//
//  1. All money amounts are decimal.Decimal; float64 never holds currency.
//  2. Relationships use ID strings, not pointers, to avoid circular
//     references.
//  3. The members table is the single source of truth for membership;
//     no member list is cached on the group row.
package models
