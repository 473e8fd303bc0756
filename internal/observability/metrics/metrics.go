package metrics

import "github.com/prometheus/client_golang/prometheus"

// AgentMetrics exposes counters/histograms for the assistant agents.
type AgentMetrics struct {
	requestsTotal *prometheus.CounterVec
	llmLatency    *prometheus.HistogramVec
	spamTotal     prometheus.Counter
}

func NewAgentMetrics(reg prometheus.Registerer) *AgentMetrics {
	m := &AgentMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant",
			Subsystem: "agents",
			Name:      "requests_total",
			Help:      "Total agent requests by agent kind and outcome",
		}, []string{"agent", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "assistant",
			Subsystem: "llm",
			Name:      "completion_latency_seconds",
			Help:      "Latency of LLM completion calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),
		spamTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "assistant",
			Subsystem: "feedback",
			Name:      "spam_gated_total",
			Help:      "Feedback messages short-circuited by the spam gate",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.llmLatency, m.spamTotal)
	return m
}

func (m *AgentMetrics) ObserveRequest(agent, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(agent, status).Inc()
}

func (m *AgentMetrics) ObserveLLMLatency(provider string, seconds float64) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(provider).Observe(seconds)
}

func (m *AgentMetrics) ObserveSpamGated() {
	if m == nil {
		return
	}
	m.spamTotal.Inc()
}
