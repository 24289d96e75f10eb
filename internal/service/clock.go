package service

import "time"

// timeNow: источник времени сервисов. Отметки усечены до микросекунд, как их хранит PostgreSQL.
var timeNow = func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }
