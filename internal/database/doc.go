// Package database owns the GORM connection and schema migration for the
// storefront. Repositories for individual tables live in subpackages.
package database
