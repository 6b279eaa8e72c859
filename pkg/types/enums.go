// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Framework identifies the web framework the emitter targets.
type Framework string

const (
	FrameworkFastAPI Framework = "fastapi"
	FrameworkDjango  Framework = "django"
)

// Frameworks lists every Framework value in declaration order.
var Frameworks = []Framework{FrameworkFastAPI, FrameworkDjango}

// Valid reports whether f is one of the declared frameworks.
func (f Framework) Valid() bool {
	for _, v := range Frameworks {
		if f == v {
			return true
		}
	}
	return false
}

func (f Framework) String() string { return string(f) }

// ParseFramework converts a user-supplied name into a Framework.
func ParseFramework(s string) (Framework, error) {
	f := Framework(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown framework %q (want one of %s)", s, joinValues(Frameworks))
	}
	return f, nil
}

// Database identifies the storage backend.
type Database string

const (
	DatabaseSQLite     Database = "sqlite"
	DatabasePostgreSQL Database = "postgresql"
	DatabaseMySQL      Database = "mysql"
	DatabaseMongoDB    Database = "mongodb"
	DatabaseDynamoDB   Database = "dynamodb"
	DatabaseFirestore  Database = "firestore"
)

// Databases lists every Database value in declaration order.
var Databases = []Database{
	DatabaseSQLite,
	DatabasePostgreSQL,
	DatabaseMySQL,
	DatabaseMongoDB,
	DatabaseDynamoDB,
	DatabaseFirestore,
}

// Valid reports whether d is one of the declared databases.
func (d Database) Valid() bool {
	for _, v := range Databases {
		if d == v {
			return true
		}
	}
	return false
}

// Relational reports whether d is a SQL database.
func (d Database) Relational() bool {
	switch d {
	case DatabaseSQLite, DatabasePostgreSQL, DatabaseMySQL:
		return true
	case DatabaseMongoDB, DatabaseDynamoDB, DatabaseFirestore:
		return false
	}
	return false
}

func (d Database) String() string { return string(d) }

// ParseDatabase converts a user-supplied name into a Database. A few common
// aliases are accepted.
func ParseDatabase(s string) (Database, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "postgres", "pg":
		v = string(DatabasePostgreSQL)
	case "mongo":
		v = string(DatabaseMongoDB)
	case "sqlite3":
		v = string(DatabaseSQLite)
	}
	d := Database(v)
	if !d.Valid() {
		return "", fmt.Errorf("unknown database %q (want one of %s)", s, joinValues(Databases))
	}
	return d, nil
}

// Auth identifies the authentication scheme.
type Auth string

const (
	AuthNone    Auth = "none"
	AuthJWT     Auth = "jwt"
	AuthSession Auth = "session"
	AuthAPIKey  Auth = "api-key"
	AuthOAuth2  Auth = "oauth2"
)

// Auths lists every Auth value in declaration order.
var Auths = []Auth{AuthNone, AuthJWT, AuthSession, AuthAPIKey, AuthOAuth2}

// Valid reports whether a is one of the declared auth kinds.
func (a Auth) Valid() bool {
	for _, v := range Auths {
		if a == v {
			return true
		}
	}
	return false
}

func (a Auth) String() string { return string(a) }

// ParseAuth converts a user-supplied name into an Auth.
func ParseAuth(s string) (Auth, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "api_key", "apikey":
		v = string(AuthAPIKey)
	case "oauth":
		v = string(AuthOAuth2)
	case "token":
		v = string(AuthJWT)
	}
	a := Auth(v)
	if !a.Valid() {
		return "", fmt.Errorf("unknown auth %q (want one of %s)", s, joinValues(Auths))
	}
	return a, nil
}

// APIStyle identifies the API surface the emitter produces.
type APIStyle string

const (
	APIStyleREST    APIStyle = "rest"
	APIStyleGraphQL APIStyle = "graphql"
	APIStyleHybrid  APIStyle = "hybrid"
)

// Valid reports whether s is a declared API style.
func (s APIStyle) Valid() bool {
	switch s {
	case APIStyleREST, APIStyleGraphQL, APIStyleHybrid:
		return true
	}
	return false
}

func (s APIStyle) String() string { return string(s) }

// FieldType is the semantic type assigned to an entity attribute.
type FieldType string

const (
	FieldString   FieldType = "string"
	FieldText     FieldType = "text"
	FieldInteger  FieldType = "integer"
	FieldDecimal  FieldType = "decimal"
	FieldBoolean  FieldType = "boolean"
	FieldDatetime FieldType = "datetime"
	FieldEmail    FieldType = "email"
)

// FieldTypes lists every FieldType value.
var FieldTypes = []FieldType{
	FieldString, FieldText, FieldInteger, FieldDecimal,
	FieldBoolean, FieldDatetime, FieldEmail,
}

// Valid reports whether t is a declared field type.
func (t FieldType) Valid() bool {
	for _, v := range FieldTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (t FieldType) String() string { return string(t) }

// Cardinality is the multiplicity of a relationship edge.
type Cardinality string

const (
	OneToOne   Cardinality = "one-to-one"
	OneToMany  Cardinality = "one-to-many"
	ManyToMany Cardinality = "many-to-many"
)

func (c Cardinality) String() string { return string(c) }

func joinValues[T ~string](vals []T) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
