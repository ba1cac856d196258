package rtp

import "github.com/prometheus/client_golang/prometheus"

// sessionMetrics wraps the Prometheus collectors exposed by one Session.
// Registration is optional: when no Registerer is supplied, every field is
// left nil and recording calls are no-ops.
type sessionMetrics struct {
	packetsSent     prometheus.Counter
	packetsReceived prometheus.Counter
	bytesSent       prometheus.Counter
	bytesReceived   prometheus.Counter
	participants    prometheus.Gauge
	collisions      prometheus.Counter
	rtcpReportsSent prometheus.Counter
}

func newSessionMetrics(reg prometheus.Registerer, sessionID string) *sessionMetrics {
	if reg == nil {
		return &sessionMetrics{}
	}

	constLabels := prometheus.Labels{"session_id": sessionID}
	m := &sessionMetrics{
		packetsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtp_session_packets_sent_total", Help: "RTP data packets sent.", ConstLabels: constLabels,
		}),
		packetsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtp_session_packets_received_total", Help: "RTP data packets received.", ConstLabels: constLabels,
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtp_session_bytes_sent_total", Help: "RTP payload bytes sent.", ConstLabels: constLabels,
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtp_session_bytes_received_total", Help: "RTP payload bytes received.", ConstLabels: constLabels,
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rtp_session_participants_active", Help: "Currently known remote participants.", ConstLabels: constLabels,
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtp_session_ssrc_collisions_total", Help: "SSRC collisions resolved.", ConstLabels: constLabels,
		}),
		rtcpReportsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rtp_session_rtcp_reports_sent_total", Help: "Compound RTCP packets sent.", ConstLabels: constLabels,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.packetsSent, m.packetsReceived, m.bytesSent, m.bytesReceived,
		m.participants, m.collisions, m.rtcpReportsSent,
	} {
		// Ignore AlreadyRegisteredError: a caller registering several
		// sessions against one Registerer is expected to reuse collectors
		// keyed by ConstLabels, not an error condition worth surfacing.
		_ = reg.Register(c)
	}
	return m
}

func (m *sessionMetrics) incPacketsSent(n int)     { incCounter(m.packetsSent, float64(1)); addCounter(m.bytesSent, float64(n)) }
func (m *sessionMetrics) incPacketsReceived(n int) { incCounter(m.packetsReceived, float64(1)); addCounter(m.bytesReceived, float64(n)) }
func (m *sessionMetrics) setParticipants(n int)    { setGauge(m.participants, float64(n)) }
func (m *sessionMetrics) incCollisions()           { incCounter(m.collisions, 1) }
func (m *sessionMetrics) incRtcpReportsSent()      { incCounter(m.rtcpReportsSent, 1) }

func incCounter(c prometheus.Counter, v float64) {
	if c != nil {
		c.Add(v)
	}
}

func addCounter(c prometheus.Counter, v float64) {
	if c != nil && v != 0 {
		c.Add(v)
	}
}

func setGauge(g prometheus.Gauge, v float64) {
	if g != nil {
		g.Set(v)
	}
}
