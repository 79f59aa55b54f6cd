// Package crowdfund records pledges made by backers to crowdfunded projects.
//
// Its core is the admission engine: a pledge is validated against its
// project (existence, deadline) and, optionally, a reward tier (ownership,
// remaining quota, minimum amount). Every attempt is appended to the pledge
// ledger, accepted or rejected; accepted ones also raise the project funding
// and claim one unit of the tier quota.
//
// The main components are:
//   - Store: the keyed record collections, in memory or persisted as one
//     JSONL file per collection.
//   - Catalog: projects and categories, with derived status and progress.
//   - Registry: reward tiers and their quotas.
//   - Ledger: the append-only, immutable list of pledges.
//   - Engine: admission of pledges, and their side-effect free validation.
//   - Aggregator: statistics recomputed from the ledger and the catalog.
//   - Audit: re-derivation of funding and quotas from the ledger.
//
// The stores are updated one after the other, there is no transaction across
// them. The engine serializes the pledges of a project, and Audit reports any
// drift left by a failed write.
//
// This package serves as the foundational logic for the `cfd` command-line tool.
package crowdfund
