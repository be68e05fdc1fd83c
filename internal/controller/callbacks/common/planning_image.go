package common

import (
	"bytes"
	"image/color"
	"strconv"
	"sync"

	"github.com/Freeeeeet/dispatch_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/dispatch_bot/internal/model"
	"github.com/Freeeeeet/dispatch_bot/internal/planning"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = ""
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	headerHeight     = 90
	leftLabelsWidth  = 220
	legendHeight     = 50
	slotWidth        = 64
	rowHeight        = 54
	blockPadding     = 3.0
	blockRadius      = 5.0
	shadowOffset     = 2.0
	minImageWidth    = 900
	maxBlocksPerCell = 3
)

// Константы шрифтов
const (
	titleFontSize      = 24.0
	hourLabelFontSize  = 14.0
	rowLabelFontSize   = 16.0
	blockFontSize      = 11.0
	legendItemFontSize = 12.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	gridLineColor    = color.NRGBA{150, 150, 150, 255}
	evenRowColor     = color.NRGBA{240, 240, 240, 255}
	oddRowColor      = color.NRGBA{228, 228, 228, 255}
	unassignedBg     = color.NRGBA{255, 244, 214, 255}
	outOfServiceBg   = color.NRGBA{210, 210, 210, 255}
	currentSlotColor = color.NRGBA{255, 99, 71, 60}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}
	blockShadowColor = color.RGBA{0, 0, 0, 20}
	blockTextColor   = color.RGBA{20, 24, 28, 230}
	legendItemColor  = color.RGBA{70, 74, 78, 220}

	statusColors = map[model.CourseStatus]color.RGBA{
		model.CourseStatusPending:    {250, 204, 21, 230},
		model.CourseStatusAssigned:   {96, 165, 250, 230},
		model.CourseStatusInProgress: {74, 222, 128, 230},
		model.CourseStatusCompleted:  {229, 231, 235, 230},
		model.CourseStatusCanceled:   {120, 120, 120, 200},
	}
	blockDefaultColor = color.RGBA{220, 220, 220, 200}
)

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

// loadFont загружает шрифт указанного стиля или использует basicfont как fallback
func loadFont(dc *gg.Context, size float64, style ...FontStyle) {
	fontStyle := FontStyleDefault
	if len(style) > 0 {
		fontStyle = style[0]
	}

	fontData := goregular.TTF
	if fontStyle == FontStyleBold {
		fontData = gobold.TTF
	}

	fontsMu.Lock()
	parsed, ok := cachedFonts[fontStyle]
	if !ok {
		var err error
		parsed, err = opentype.Parse(fontData)
		if err != nil {
			fontsMu.Unlock()
			dc.SetFontFace(basicfont.Face7x13)
			return
		}
		cachedFonts[fontStyle] = parsed
	}
	fontsMu.Unlock()

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// boardRow строка сетки: неназначенные курсы или водитель
type boardRow struct {
	label   string
	driver  *model.Driver
	courses map[int][]*model.Course
}

// GeneratePlanningImage рисует сетку дня: часы по горизонтали, водители по вертикали.
// Первая строка - неназначенные курсы. Цвет блока - отображаемый статус.
func GeneratePlanningImage(board *planning.Board) ([]byte, error) {
	slots := board.Slots()
	rows := buildRows(board)

	width := leftLabelsWidth + len(slots)*slotWidth + 20
	if width < minImageWidth {
		width = minImageWidth
	}
	height := headerHeight + len(rows)*rowHeight + legendHeight

	dc := gg.NewContext(width, height)
	dc.SetColor(bgColor)
	dc.Clear()

	drawTitle(dc, board)
	drawHourLabels(dc, board, slots)
	for i, row := range rows {
		drawRow(dc, board, slots, row, i)
	}
	drawGrid(dc, slots, len(rows))
	drawCurrentTimeLine(dc, board, slots, len(rows))
	drawLegend(dc, height)

	return encodeImage(dc)
}

func buildRows(board *planning.Board) []boardRow {
	unassigned := boardRow{label: "Non assignées", courses: make(map[int][]*model.Course)}
	for _, c := range board.Unassigned() {
		h := c.ScheduledAt.In(board.Day.Location()).Hour()
		unassigned.courses[h] = append(unassigned.courses[h], c)
	}

	rows := []boardRow{unassigned}
	for _, d := range board.Drivers {
		row := boardRow{label: d.Name, driver: d, courses: make(map[int][]*model.Course)}
		for _, c := range board.DriverCourses(d.ID) {
			h := c.ScheduledAt.In(board.Day.Location()).Hour()
			row.courses[h] = append(row.courses[h], c)
		}
		rows = append(rows, row)
	}
	return rows
}

// drawTitle рисует заголовок с датой
func drawTitle(dc *gg.Context, board *planning.Board) {
	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored("Planning du "+formatting.FormatDayTitle(board.Day), 20, 30, 0, 0.5)
}

// drawHourLabels рисует часы над колонками
func drawHourLabels(dc *gg.Context, board *planning.Board, slots []int) {
	loadFont(dc, hourLabelFontSize, FontStyleBold)
	for i, h := range slots {
		x := float64(leftLabelsWidth + i*slotWidth)
		if board.IsCurrentSlot(h) {
			dc.SetColor(currentSlotColor)
			dc.DrawRectangle(x, headerHeight-28, slotWidth, 28)
			dc.Fill()
		}
		dc.SetColor(hourLabelColor)
		dc.DrawStringAnchored(formatting.FormatHour(h), x+slotWidth/2, headerHeight-14, 0.5, 0.5)
	}
}

// drawRow рисует фон, подпись и блоки курсов одной строки
func drawRow(dc *gg.Context, board *planning.Board, slots []int, row boardRow, index int) {
	y := float64(headerHeight + index*rowHeight)
	width := float64(len(slots) * slotWidth)

	switch {
	case row.driver == nil:
		dc.SetColor(unassignedBg)
	case !row.driver.CanTakeCourses():
		dc.SetColor(outOfServiceBg)
	case index%2 == 0:
		dc.SetColor(evenRowColor)
	default:
		dc.SetColor(oddRowColor)
	}
	dc.DrawRectangle(0, y, leftLabelsWidth+width, rowHeight)
	dc.Fill()

	loadFont(dc, rowLabelFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(formatting.Truncate(row.label, 20), 12, y+rowHeight/2-6, 0, 0.5)
	if row.driver != nil {
		loadFont(dc, blockFontSize)
		dc.SetColor(hourLabelColor)
		dc.DrawStringAnchored(formatting.GetDriverStatusDisplay(row.driver.Status).Text, 12, y+rowHeight/2+12, 0, 0.5)
	}

	for i, h := range slots {
		courses := row.courses[h]
		if len(courses) == 0 {
			continue
		}
		x := float64(leftLabelsWidth + i*slotWidth)
		drawCell(dc, board, courses, x, y)
	}
}

// drawCell рисует курсы слота друг под другом
func drawCell(dc *gg.Context, board *planning.Board, courses []*model.Course, x, y float64) {
	shown := courses
	if len(shown) > maxBlocksPerCell {
		shown = shown[:maxBlocksPerCell]
	}
	blockH := (rowHeight - blockPadding*2) / float64(len(shown))

	for i, c := range shown {
		by := y + blockPadding + float64(i)*blockH
		bw := slotWidth - blockPadding*2
		fill := getBlockColor(planning.DisplayStatus(c, board.Now))

		dc.SetColor(blockShadowColor)
		dc.DrawRoundedRectangle(x+blockPadding+shadowOffset, by+shadowOffset, bw, blockH-2, blockRadius)
		dc.Fill()

		dc.SetColor(fill)
		dc.DrawRoundedRectangle(x+blockPadding, by, bw, blockH-2, blockRadius)
		dc.Fill()

		dc.SetColor(darkenColor(fill, 0.8))
		dc.SetLineWidth(1)
		dc.DrawRoundedRectangle(x+blockPadding, by, bw, blockH-2, blockRadius)
		dc.Stroke()

		loadFont(dc, blockFontSize)
		dc.SetColor(blockTextColor)
		dc.DrawStringAnchored(formatting.FormatTime(c.ScheduledAt.In(board.Day.Location())), x+slotWidth/2, by+(blockH-2)/2, 0.5, 0.4)
	}

	if extra := len(courses) - len(shown); extra > 0 {
		loadFont(dc, blockFontSize, FontStyleBold)
		dc.SetColor(currentTimeColor)
		dc.DrawStringAnchored("+"+strconv.Itoa(extra), x+slotWidth-4, y+rowHeight-4, 1, 0)
	}
}

// drawGrid рисует линии колонок и строк
func drawGrid(dc *gg.Context, slots []int, rows int) {
	dc.SetLineWidth(0.3)
	dc.SetColor(gridLineColor)

	bottom := float64(headerHeight + rows*rowHeight)
	right := float64(leftLabelsWidth + len(slots)*slotWidth)
	for i := 0; i <= len(slots); i++ {
		x := float64(leftLabelsWidth + i*slotWidth)
		dc.DrawLine(x, headerHeight, x, bottom)
		dc.Stroke()
	}
	for r := 0; r <= rows; r++ {
		y := float64(headerHeight + r*rowHeight)
		dc.DrawLine(0, y, right, y)
		dc.Stroke()
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени
func drawCurrentTimeLine(dc *gg.Context, board *planning.Board, slots []int, rows int) {
	if len(slots) == 0 || !planning.SameDay(board.Day, board.Now.In(board.Day.Location())) {
		return
	}

	now := board.Now.In(board.Day.Location())
	current := float64(now.Hour()) + float64(now.Minute())/60.0
	first := float64(slots[0])
	if current < first || current >= float64(slots[len(slots)-1]+1) {
		return
	}

	x := float64(leftLabelsWidth) + (current-first)*slotWidth
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(x, headerHeight, x, float64(headerHeight+rows*rowHeight))
	dc.Stroke()
}

// drawLegend рисует легенду статусов внизу
func drawLegend(dc *gg.Context, height int) {
	items := []model.CourseStatus{
		model.CourseStatusPending,
		model.CourseStatusAssigned,
		model.CourseStatusInProgress,
		model.CourseStatusCompleted,
		model.CourseStatusCanceled,
	}

	boxW, boxH := 20.0, 14.0
	x := 20.0
	y := float64(height) - legendHeight/2 - boxH/2

	loadFont(dc, legendItemFontSize)
	for _, status := range items {
		dc.SetColor(getBlockColor(status))
		dc.DrawRoundedRectangle(x, y, boxW, boxH, 3)
		dc.Fill()

		label := formatting.GetCourseStatusDisplay(status).Text
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(label, x+boxW+8, y+boxH/2, 0, 0.4)
		w, _ := dc.MeasureString(label)
		x += boxW + 8 + w + 24
	}
}

// getBlockColor возвращает цвет блока по статусу
func getBlockColor(status model.CourseStatus) color.RGBA {
	if c, ok := statusColors[status]; ok {
		return c
	}
	return blockDefaultColor
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
