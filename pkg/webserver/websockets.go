package webserver

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"openf1dashboard/pkg/caster"
	"openf1dashboard/pkg/live"
	"openf1dashboard/pkg/model"
)

var upgrader = websocket.Upgrader{} // use default options

var snapshotCaster = caster.JSONChannelCaster[model.SessionSnapshot]{}

// handleLiveSocket upgrades the connection and pushes every freshly derived
// snapshot to the client until it disconnects. A slow client only misses
// intermediate snapshots; the pubsub layer drops rather than blocks.
func (m *Manager) handleLiveSocket(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading live socket: %s", err.Error())
		return
	}
	defer c.Close()

	if m.m != nil {
		m.m.IncWebsocketClients()
		defer m.m.DecWebsocketClients()
	}

	sub := m.snapshots.Subscribe(live.TopicSnapshots)
	defer m.snapshots.Unsubscribe(live.TopicSnapshots, sub)

	// reader only to detect client close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			_, _, err := c.ReadMessage()
			if err != nil {
				return
			}
		}
	}()

	// greet with the current snapshot so the dashboard paints immediately
	if err := m.writeSnapshot(c, m.live.Current()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case snapshot, ok := <-sub:
			if !ok {
				return
			}
			if err := m.writeSnapshot(c, snapshot); err != nil {
				return
			}
		}
	}
}

func (m *Manager) writeSnapshot(c *websocket.Conn, snapshot model.SessionSnapshot) error {
	payload, err := snapshotCaster.To(snapshot)
	if err != nil {
		log.Printf("Error casting snapshot to json: %s", err.Error())
		return nil
	}
	err = c.WriteMessage(websocket.TextMessage, []byte(payload))
	if err != nil {
		log.Printf("Error writing to live socket: %s", err.Error())
	}
	return err
}
