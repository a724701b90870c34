package errcode

import (
	"github.com/gnames/gn"
)

const (
	UnknownError gn.ErrorCode = iota

	// File System errors
	CreateDirError
	CopyFileError
	ReadFileError
	CreateFileError
	WriteFileError

	// Logging errors
	CreateLogFileError

	// Config errors
	ConfigNoInputError
	ConfigInvalidError

	// Run errors
	RunCancelledError

	// Input errors
	InputScanError
	RORDumpError

	// Database errors
	DBConnectionError
	DBNotConnectedError
	DBTableExistsCheckError
	DBTruncateError
	DBInsertError
	DBAnalyzeError

	// Schema errors
	SchemaGORMConnectionError
	SchemaMigrateError

	// Export errors
	SQLiteExportError
	MetricsWriteError
	S3ConfigError
	S3UploadError
)
