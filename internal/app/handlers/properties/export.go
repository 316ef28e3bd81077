package properties

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	handlersupport "coastalstay/internal/app/handlers/support"
	"coastalstay/internal/app/queries"
	"coastalstay/internal/app/uow"
	"coastalstay/internal/domain/booking"
	"coastalstay/internal/domain/pricing"
	"coastalstay/internal/domain/shared/daterange"
	domainuser "coastalstay/internal/domain/user"
)

const bookingsExportKey = "admin.properties.bookings_export"

const exportSheet = "Bookings"

type BookingsExportQuery struct {
	Ref string
}

func (q BookingsExportQuery) Key() string                   { return bookingsExportKey }
func (q BookingsExportQuery) RequiredRole() domainuser.Role { return domainuser.RoleEditor }

// FileExport is a generated download.
type FileExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BookingsExportHandler writes the booking list of one property to an xlsx
// sheet, one row per booking with the stay priced at the current rates.
type BookingsExportHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *BookingsExportHandler) Handle(ctx context.Context, q BookingsExportQuery) (FileExport, error) {
	unit, execCtx, done, err := handlersupport.ReadUnit(ctx, h.UoWFactory)
	if err != nil {
		return FileExport{}, err
	}
	defer done()
	property, err := handlersupport.LoadProperty(execCtx, unit.Properties(), q.Ref)
	if err != nil {
		return FileExport{}, err
	}

	list := append([]booking.BookingDate(nil), property.Bookings...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CheckIn.Before(list[j].CheckIn) })

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()
	if err := xl.SetSheetName(xl.GetSheetName(0), exportSheet); err != nil {
		return FileExport{}, err
	}
	header := []string{"id", "check_in", "check_out", "nights", "guest_name", "notes", "currency", "total_price"}
	if err := xl.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return FileExport{}, err
	}
	for i, b := range list {
		quote := pricing.CalculateStay(property.Pricing, daterange.Stay{CheckIn: b.CheckIn, CheckOut: b.CheckOut})
		row := []any{
			b.ID,
			b.CheckIn.String(),
			b.CheckOut.String(),
			b.Nights(),
			b.GuestName,
			b.Notes,
			quote.Currency,
			quote.TotalPrice.InexactFloat64(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return FileExport{}, err
		}
		if err := xl.SetSheetRow(exportSheet, cell, &row); err != nil {
			return FileExport{}, err
		}
	}
	buf, err := xl.WriteToBuffer()
	if err != nil {
		return FileExport{}, fmt.Errorf("properties: write bookings sheet: %w", err)
	}
	return FileExport{
		Filename:    fmt.Sprintf("%s-bookings.xlsx", property.Slug),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        buf.Bytes(),
	}, nil
}

var _ queries.Handler[BookingsExportQuery, FileExport] = (*BookingsExportHandler)(nil)
