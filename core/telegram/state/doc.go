// Package state keeps per-user conversation state for Telegram bots: an
// explicit FSM stage, guarded transitions between stages and a small bag of
// typed temporary values. Sessions live in memory and do not survive restarts.
package state
