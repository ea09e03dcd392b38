// Package triage provides the business boundary for triagedesk's
// emergency-department intake engine. It defines the Service (ordered waiting
// list, claim/close lifecycle, patient auto-provisioning), the vital-sign
// value types, the triage level table, and the Intake aggregate.
package triage
