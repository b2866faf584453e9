/*
Package types defines the records held by the CyberShield state layer.

All types are plain values. Stores hand out copies, never references into
persisted state, so callers may mutate what they receive freely.

# Core Types

Support:
  - SupportTicket: a user question, pending until an operator answers it
  - TicketStatus: pending or resolved

Quiz:
  - CustomQuestion: operator-authored question with at least two Options
  - Option: answer choice, ids are "opt-<index>"

Activity:
  - Visitor: case-insensitive username with the last time it was seen

Digital detox:
  - UserProfile: ledger head keyed by email, TotalPoints never below zero
  - ScreenTimeLog: one submission per email per local calendar day
  - LedgerResult: points awarded and the resulting total

# Serialization

Field names in JSON follow the stored layout (userName, totalPoints, dateStr,
imageBase64). ScreenTimeLog.ImageBase64 is omitted when empty so that
evidence-stripped logs encode to the smallest possible payload.
*/
package types
