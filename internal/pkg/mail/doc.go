// Package mail defines the contract for sending email and its implementations.
//
// SMTP is the production transport. Log and Memory are for local development
// and tests respectively.
package mail
