package dynamo

import "github.com/aws/aws-sdk-go-v2/service/dynamodb"

// LeadRepo implements assignment.LeadStore against the leads table
// (PK = LeadID).
type LeadRepo struct {
	db    *dynamodb.Client
	table string
}

// NewLeadRepo creates a DynamoDB-backed lead repository.
func NewLeadRepo(db *dynamodb.Client, table string) *LeadRepo {
	return &LeadRepo{db: db, table: table}
}

// RuleRepo implements assignment.RuleSource against the rules table
// (PK = FunnelID, SK = RuleID).
type RuleRepo struct {
	db    *dynamodb.Client
	table string
}

// NewRuleRepo creates a DynamoDB-backed rule source.
func NewRuleRepo(db *dynamodb.Client, table string) *RuleRepo {
	return &RuleRepo{db: db, table: table}
}

// CounterRepo implements assignment.CapStore against the counters table
// (PK = RuleID, SK = PeriodKey).
type CounterRepo struct {
	db    *dynamodb.Client
	table string
}

// NewCounterRepo creates a DynamoDB-backed cap counter store.
func NewCounterRepo(db *dynamodb.Client, table string) *CounterRepo {
	return &CounterRepo{db: db, table: table}
}

// UnassignedRepo implements assignment.UnassignedStore against the
// unassigned table (PK = FunnelID, SK = LeadID).
type UnassignedRepo struct {
	db    *dynamodb.Client
	table string
}

// NewUnassignedRepo creates a DynamoDB-backed unassigned-queue store.
func NewUnassignedRepo(db *dynamodb.Client, table string) *UnassignedRepo {
	return &UnassignedRepo{db: db, table: table}
}

// NotificationRepo implements notification.RecordStore against the
// notifications table (PK = LeadID, SK = AttemptSK).
type NotificationRepo struct {
	db    *dynamodb.Client
	table string
}

// NewNotificationRepo creates a DynamoDB-backed notification record store.
func NewNotificationRepo(db *dynamodb.Client, table string) *NotificationRepo {
	return &NotificationRepo{db: db, table: table}
}

// AccountRepo implements assignment.MemberChecker and
// notification.Directory against the accounts reference table.
type AccountRepo struct {
	db    *dynamodb.Client
	table string
}

// NewAccountRepo creates a DynamoDB-backed account directory.
func NewAccountRepo(db *dynamodb.Client, table string) *AccountRepo {
	return &AccountRepo{db: db, table: table}
}
