package settings

import (
	"database/sql"
	"fmt"
)

var flagColumns = map[string]string{
	FlagRed:       "red",
	FlagSafetyCar: "safetycar",
	FlagYellow:    "yellow",
	FlagChequered: "chequered",
}

func buildCreateAlertsTable() string {
	return `CREATE TABLE IF NOT EXISTS alerts (
		userid TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		chatid TEXT NOT NULL,
		red INTEGER,
		safetycar INTEGER,
		yellow INTEGER,
		chequered INTEGER);`
}

func buildSelectAlertsCommand(userID string) (string, func(*sql.Rows) (Alerts, error)) {
	fields := "red, safetycar, yellow, chequered"
	return fmt.Sprintf(`SELECT %s FROM alerts WHERE userid = '%s'`, fields, userID), processSelectAlertsRows
}

func processSelectAlertsRows(rows *sql.Rows) (Alerts, error) {
	defer rows.Close()

	a := AllDisabled()
	// only can be one row
	if rows.Next() {
		var red int
		var safetycar int
		var yellow int
		var chequered int
		err := rows.Scan(&red, &safetycar, &yellow, &chequered)
		if err != nil {
			return a, err
		}
		a.setFlagEnabled(FlagRed, red == 1)
		a.setFlagEnabled(FlagSafetyCar, safetycar == 1)
		a.setFlagEnabled(FlagYellow, yellow == 1)
		a.setFlagEnabled(FlagChequered, chequered == 1)
		return a, nil
	}
	err := rows.Err()
	if err != nil {
		return a, err
	}
	return a, err
}

func buildSelectSubscribersCommand(flag string) (string, func(rows *sql.Rows) ([]Subscriber, error)) {
	fields := "userid, name, chatid"
	column, ok := flagColumns[flag]
	if !ok {
		column = "red"
	}
	return fmt.Sprintf(`SELECT %s FROM alerts WHERE %s = 1`, fields, column), processSelectSubscribersRows
}

func processSelectSubscribersRows(rows *sql.Rows) ([]Subscriber, error) {
	defer rows.Close()

	subscribers := make([]Subscriber, 0)
	for rows.Next() {
		var id string
		var name string
		var chatid string
		err := rows.Scan(&id, &name, &chatid)
		if err != nil {
			return subscribers, err
		}
		subscribers = append(subscribers, Subscriber{
			ID:     id,
			Name:   name,
			ChatID: chatid,
		})
	}
	err := rows.Err()
	if err != nil {
		return subscribers, err
	}
	return subscribers, err
}

func buildUpsertAlertsCommand(userID, chatID string, a Alerts) string {
	fields := "userid, name, chatid, red, safetycar, yellow, chequered"
	values := fmt.Sprintf(`'%s', '%s', '%s', %d, %d, %d, %d`,
		userID, userID, chatID,
		a.enabledInt(FlagRed), a.enabledInt(FlagSafetyCar), a.enabledInt(FlagYellow), a.enabledInt(FlagChequered))
	return fmt.Sprintf(`INSERT OR REPLACE INTO alerts (%s) VALUES (%s)`, fields, values)
}
