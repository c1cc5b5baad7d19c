// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// every row is one event emitted by a committed transaction.
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	time INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	name TEXT NOT NULL,
	account BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	token BLOB(20) NOT NULL,
	amount TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(time);
CREATE INDEX IF NOT EXISTS event_i1 ON event(txID);
CREATE INDEX IF NOT EXISTS event_i2 ON event(account);
CREATE INDEX IF NOT EXISTS event_i3 ON event(token, name);
`
