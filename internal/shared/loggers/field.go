package loggers

const (
	FieldApp        = "app"
	FieldComponent  = "component"
	FieldHttpMethod = "http_method"
	FieldHttpPath   = "http_path"
	FieldHttpStatus = "http_status"

	FieldDuration      = "duration"
	FieldRequestID     = "request_id"
	FieldErrorStack    = "error_stack"
	FieldErrorCode     = "error_code"
	FieldErrorCategory = "error_category"

	FieldPartitionId   = "partition_id"
	FieldRunID         = "run_id"
	FieldCollection    = "collection"
	FieldPhase         = "phase"
	FieldTransactionID = "transaction_id"
	FieldChunkIndex    = "chunk_index"
)
