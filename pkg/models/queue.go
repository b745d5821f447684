package models

// IngestQueue is sent by ingestAPI and received by ingestObject
type IngestQueue struct {
	BucketName string `json:"bucketName"`
	Key        string `json:"key"`
}

// FlattenQueue specifies a JSON object to be flattened and the destination bucket.
type FlattenQueue struct {
	BucketName   string `json:"bucketName"`
	Key          string `json:"key"`
	TargetBucket string `json:"targetBucket"`
}

// QueryQueue is a templated Athena query received by athenaExecutor
type QueryQueue struct {
	QueryTemplate  string                 `json:"queryTemplate"`
	TemplateValues map[string]interface{} `json:"templateValues,omitempty"`
}

// PartitionQueue is arguments of addPartitions to add a new partition.
// Empty fields are inherited from the previous partition in the same batch.
// Table is accepted as an alias of TableName so that IngestResult can be
// queued as is.
type PartitionQueue struct {
	Database  string            `json:"database,omitempty"`
	TableName string            `json:"table_name,omitempty"`
	Table     string            `json:"table,omitempty"`
	Location  string            `json:"location"`
	Keys      map[string]string `json:"keys"`
}

// Column is a pair of column name and Athena (Hive DDL) type.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ColumnQueue is arguments of addColumns
type ColumnQueue struct {
	Database string   `json:"database"`
	Table    string   `json:"table"`
	Columns  []Column `json:"columns"`
}
