package pulse

import "embed"

//go:embed db/postgres/migrations/*.sql
var PostgresMigrationsFS embed.FS
