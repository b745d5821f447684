package models

// IngestResult is returned by ingestObject for a repartitioned object.
type IngestResult struct {
	Src      S3Object          `json:"src"`
	Dst      S3Object          `json:"dst"`
	Table    string            `json:"table"`
	Location string            `json:"location"`
	Keys     map[string]string `json:"keys"`
}

// FlattenResult is returned by flattenJSON
type FlattenResult struct {
	Src     S3Object `json:"src"`
	Dst     S3Object `json:"dst"`
	Columns int      `json:"columns"`
}

// QueryResult is returned by athenaExecutor. Rows map column header to value.
type QueryResult struct {
	Query     string              `json:"query"`
	RowsCount int                 `json:"rowsCount"`
	Rows      []map[string]string `json:"rows"`
}

// PartitionResult is returned by addPartitions
type PartitionResult struct {
	Database  string            `json:"database"`
	TableName string            `json:"table_name"`
	Location  string            `json:"location"`
	Keys      map[string]string `json:"keys,omitempty"`
	Created   bool              `json:"created"`
}

// RedriveResult is returned by redriveRecords
type RedriveResult struct {
	Found int `json:"found"`
	Sent  int `json:"sent"`
}
