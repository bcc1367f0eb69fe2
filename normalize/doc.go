// Package normalize maps the raw records of each recipe source into the
// canonical core.Recipe.
//
// Normalizers are pure functions. They never fail on a malformed
// sub-field: arrays, nutrition, dates and durations each degrade to their
// empty or nil value independently. The only error a normalizer returns
// wraps core.ErrMalformedSource, when the raw record cannot be parsed as
// structured data at all; callers treat that as fatal for the whole source.
//
// # Sources
//
//   - NormalizeFoodCom: Kaggle food.com rows whose list fields are
//     Python-style array strings
//   - NormalizeMealDB: TheMealDB API meals with 20 positional
//     ingredient/measure slots
//   - NormalizeSchemaOrg: schema.org Recipe JSON(-LD) with polymorphic fields
package normalize
