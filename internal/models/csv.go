package mxm

import (
	"io"
	"strconv"
	"time"

	"github.com/Daneel-Li/feedback-board/pkg/csvexport"
)

// CSVColumns 导出表头
var CSVColumns = []string{"id", "name", "email", "rating", "message", "createdAt"}

// CSVFileName 导出附件文件名
const CSVFileName = "feedbacks.csv"

// WriteCSV 按给定顺序导出 CSV，服务端和客户端导出共用
func WriteCSV(w io.Writer, records []*Feedback) error {
	cw := csvexport.NewWriter(w)
	if err := cw.WriteHeader(CSVColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.WriteRecord(r.csvFields()); err != nil {
			return err
		}
	}
	return cw.Flush()
}

func (f *Feedback) csvFields() []*string {
	id := strconv.FormatUint(uint64(f.ID), 10)
	created := f.CreatedAt.UTC().Format(time.RFC3339)
	var rating *string
	if f.Rating != nil {
		s := strconv.Itoa(*f.Rating)
		rating = &s
	}
	name, message := f.Name, f.Message
	return []*string{&id, &name, f.Email, rating, &message, &created}
}
