package core

// Canonical telemetry columns, in display order.
const (
	ColumnRunID     = "RunID"
	ColumnUTC       = "UTC"
	ColumnTags      = "Tags"
	ColumnCWD       = "CWD"
	ColumnGitBranch = "GitBranch"
	ColumnGitCommit = "GitCommit"
	ColumnPython    = "Python"
)

// CanonicalColumns lists the telemetry columns a run export normally carries.
var CanonicalColumns = []string{
	ColumnRunID,
	ColumnUTC,
	ColumnTags,
	ColumnCWD,
	ColumnGitBranch,
	ColumnGitCommit,
	ColumnPython,
}

// ColumnAliases maps each canonical column to header names accepted in its place.
var ColumnAliases = map[string][]string{
	ColumnRunID:     {"runid", "run_id", "id", "run", "session"},
	ColumnUTC:       {"utc", "timestamp", "time", "datetime", "ts", "date", "created_at"},
	ColumnTags:      {"tags", "label", "labels", "kv", "meta", "metadata"},
	ColumnCWD:       {"cwd", "cwd_path", "workdir", "working_dir", "pwd", "path"},
	ColumnGitBranch: {"gitbranch", "branch"},
	ColumnGitCommit: {"gitcommit", "commit", "sha", "git_sha"},
	ColumnPython:    {"python", "python_version", "py", "runtime"},
}
