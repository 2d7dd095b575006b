package servo

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/amielabs/amie-core/core/servo"

var logger = otelslog.NewLogger(scopeName)
