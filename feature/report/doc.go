// Package report renders snapshot change reports and delivers them.
//
// A report (see feature/snapshot.Compare) is rendered either as a console
// table or as an HTML table with per-bucket rows and a totals row, and can
// be emailed over SMTP.
package report
