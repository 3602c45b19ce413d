// Package sql embeds the schema migrations and the statements the run
// registry executes. Keeping the SQL in files rather than Go strings
// makes the schema reviewable on its own.
package sql

import (
	"embed"
)

//go:embed migrations
var Migrations embed.FS

//go:embed queries/register_run.sql
var RegisterRun string

//go:embed queries/lookup_completed_run.sql
var LookupCompletedRun string

//go:embed queries/update_run_status.sql
var UpdateRunStatus string

//go:embed queries/complete_run.sql
var CompleteRun string

//go:embed queries/delete_run.sql
var DeleteRun string

//go:embed queries/count_run_episodes.sql
var CountRunEpisodes string
