package keys

// Keys used to identify log message data items.
const Message = "message"
const Offset = "message_offset"
const SchemaName = "schema_name"
const BaseTopic = "base_topic"
const AppName = "app_name"
const MaxRetries = "maxRetries"
const Producer = "producer"
const Topic = "topic"
const BacklogOffset = "backlog_offset"
const StatusResponse = "status_response"
const StatusCode = "status_code"
const Request = "Request"
const RequestID = "request_id"
const SessionID = "session_id"
const Attempt = "attempt"
const MaxAttempts = "max_attempts"
const Status = "status"
const Generation = "generation"
const Exhausted = "exhausted"
