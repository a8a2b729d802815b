package storage

import (
	"context"
)

// ReportStorage — архив отчетов синхронизации календаря. Загрузка отчета —
// побочный эффект: ее отказ логируется и не влияет на результат
// синхронизации.
type ReportStorage interface {
	UploadReport(ctx context.Context, data []byte, objectName string) (string, error)
}
