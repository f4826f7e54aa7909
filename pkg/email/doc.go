// Package email abstracts transactional email delivery behind a single
// Sender interface with interchangeable backends:
//
//   - SMTPSender: a store-and-relay server (host/port/credentials)
//   - PostmarkSender: Postmark's transactional HTTP API
//   - ResendSender: Resend's HTTP JSON API
//   - DevSender: writes messages to disk for local development
//
// The backend is selected statically through Config (env-tagged for
// github.com/caarlos0/env) via NewFromConfig; callers only ever see Sender.
// Message validation (at least one recipient, a subject, and a body) runs
// uniformly before dispatch regardless of backend.
//
// SendBatch sends N independent messages concurrently and returns N
// independent results, which is what the email channel observer uses to
// deliver one personalized message per recipient.
package email
