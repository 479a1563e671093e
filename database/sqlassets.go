package sqlassets

import _ "embed"

//go:embed schema/blogs.sql
var BlogsSQL string
