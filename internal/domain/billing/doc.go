// Package billing provides the domain model for monthly tenancy bills.
//
// This package implements the tenancy billing bounded context, which is responsible for:
//   - Pricing a billing period from meter readings and the property's rates
//   - Resolving which calendar month the next bill of a tenancy covers
//   - Tracking the payment artifact, tenant notification and payment of each bill
//
// Key Aggregates:
//   - Bill: One billed period of a tenancy with its ordered line items.
//     (tenancy, period label) is unique and present units never fall below previous units.
//
// Value Objects and Services:
//   - Calculator: Pure pricing of consumption, rent, water and other charges
//   - Period: Canonical "Jan 2006" label plus the bill date, resolved by ResolvePeriod
//   - PaymentIntent: The upi://pay URI a payment QR code encodes
//   - Tenancy, Property, RateSnapshot: Read model of the rates in force when billing
//
// Error codes:
//   - INVALID_READING, DUPLICATE_PERIOD, PERSISTENCE_FAILURE reject a generation and write nothing
//   - ARTIFACT_WRITE_ERROR, NOTIFICATION_ENQUEUE_ERROR are raised by follow-up steps after commit
package billing
