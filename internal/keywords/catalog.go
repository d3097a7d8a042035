package keywords

import "regexp"

// techTerms is the catalog of technical terms recognised in free text.
// Each entry is one alternation group matched case-insensitively on word boundaries.
var techTerms = []string{
	// languages
	`Python|Java|JavaScript|TypeScript|Go|Golang|Rust|C\+\+|C#|C|Scala|Kotlin|Swift|Ruby|PHP|Perl|R|MATLAB|Julia|Erlang|Elixir|Clojure|Haskell|F#|Dart`,
	// frontend
	`React|Vue|Angular|Svelte|Next\.js|Nuxt|Gatsby|Remix|Astro|Ember|Backbone|jQuery|Bootstrap|Tailwind|Material-UI|MUI|Ant Design|Chakra UI|Styled Components`,
	// backend
	`Express|FastAPI|Flask|Django|Spring|Spring Boot|ASP\.NET|Rails|Laravel|Symfony|Phoenix|Gin|Echo|Fiber|Koa|Nest\.js|Hapi|Fastify|Sails`,
	// runtimes
	`Node\.js|Deno|Bun|JVM|\.NET|WebAssembly|WASM`,
	// relational databases
	`PostgreSQL|MySQL|MariaDB|SQL Server|Oracle|SQLite|CockroachDB|TiDB|PlanetScale|Supabase`,
	// document, key-value and graph stores
	`MongoDB|Redis|Cassandra|DynamoDB|CouchDB|Couchbase|Neo4j|ArangoDB|Fauna|Firestore|Firebase|Cosmos DB|InfluxDB|TimescaleDB`,
	// search and vector engines
	`Elasticsearch|Solr|OpenSearch|Algolia|Meilisearch|Pinecone|Weaviate|Qdrant|Milvus`,
	// clouds and hosting
	`AWS|Amazon Web Services|GCP|Google Cloud|Azure|Microsoft Azure|Heroku|Vercel|Netlify|Railway|Render|Fly\.io|DigitalOcean|Linode|Vultr`,
	// AWS
	`EC2|S3|Lambda|RDS|DynamoDB|SQS|SNS|CloudFront|Route53|VPC|IAM|CloudFormation|CDK|ECS|EKS|Fargate|API Gateway|Step Functions|EventBridge|SageMaker|Bedrock`,
	// Google Cloud
	`GCE|GKE|Cloud Run|Cloud Functions|Cloud SQL|BigQuery|Pub/Sub|Cloud Storage|Cloud Build|Cloud CDN|Cloud IAM`,
	// Azure
	`Azure Functions|Azure App Service|AKS|Azure SQL|Cosmos DB|Service Bus|Event Grid|Azure DevOps|Azure Pipeline`,
	// containers
	`Docker|Kubernetes|K8s|Podman|containerd|rkt|Helm|Kustomize|Docker Compose|Swarm|Nomad|Mesos`,
	// infrastructure as code
	`Terraform|Pulumi|CloudFormation|Ansible|Chef|Puppet|SaltStack|Vagrant|Packer`,
	// CI/CD
	`Jenkins|GitHub Actions|GitLab CI|CircleCI|Travis CI|Bamboo|TeamCity|ArgoCD|Flux|Spinnaker|Tekton|Drone|Concourse`,
	// source control and collaboration
	`Git|GitHub|GitLab|Bitbucket|SVN|Mercurial|Perforce|Jira|Confluence|Linear|Notion|Slack|Discord`,
	// protocols
	`REST|GraphQL|gRPC|WebSocket|WebRTC|HTTP|HTTPS|TCP|UDP|MQTT|AMQP|RabbitMQ|Apache Kafka|NATS|Redis Pub/Sub`,
	// API tooling
	`Postman|Insomnia|Swagger|OpenAPI|Kong|KrakenD|Tyk|Apigee|AWS API Gateway|FastAPI|tRPC`,
	// ML libraries
	`TensorFlow|PyTorch|Keras|scikit-learn|scikit|XGBoost|LightGBM|CatBoost|Pandas|NumPy|SciPy|JAX|ONNX|Hugging Face|Transformers|LangChain|LlamaIndex|OpenAI|Anthropic|Claude`,
	// ML platforms
	`MLflow|Weights & Biases|W&B|TensorBoard|Kubeflow|SageMaker|Vertex AI|Azure ML|Databricks|Snowflake|BigQuery ML`,
	// data processing
	`Apache Spark|Apache Flink|Apache Beam|Hadoop|Hive|Pig|Storm|Kafka Streams|Apache Airflow|Prefect|Dagster|dbt|Fivetran|Airbyte`,
	// observability
	`Prometheus|Grafana|Datadog|New Relic|Sentry|Elastic|ELK Stack|Loki|Jaeger|Zipkin|OpenTelemetry|Honeycomb|Lightstep|Splunk`,
	// log shipping
	`Logstash|Fluentd|Fluent Bit|Filebeat|Winston|Pino|Bunyan|Structlog`,
	// testing
	`Jest|Mocha|Chai|Cypress|Playwright|Selenium|Pytest|unittest|JUnit|TestNG|RSpec|Cucumber|Gherkin|Vitest|Testing Library`,
	// security
	`OAuth|OAuth2|JWT|JWT Tokens|OpenID Connect|LDAP|SAML|Auth0|Okta|Keycloak|Vault|Secrets Manager|Snyk|SonarQube|OWASP|Burp Suite`,
	// architecture
	`microservices|serverless|monolith|monolithic|event-driven|EDA|CQRS|Event Sourcing|DDD|Domain Driven Design|MVC|MVVM|Clean Architecture|Hexagonal|SOLID`,
	// process
	`Agile|Scrum|Kanban|SAFe|Lean|DevOps|DevSecOps|SRE|Site Reliability Engineering|TDD|BDD|DDD|CI/CD|Continuous Integration|Continuous Deployment`,
	// proxies and meshes
	`Nginx|Apache|Caddy|Traefik|HAProxy|Envoy|Istio|Linkerd|Consul`,
	// queues and streams
	`RabbitMQ|Apache Kafka|Kinesis|Pub/Sub|ActiveMQ|Amazon SQS|Azure Service Bus|NATS|Redis Streams|ZeroMQ`,
	// caching and CDN
	`Redis|Memcached|Varnish|CloudFlare|Fastly|AWS CloudFront|Cloud CDN|CDN`,
	// static sites
	`Jekyll|Hugo|Gatsby|Next\.js|Nuxt|Astro|11ty|Eleventy|Docusaurus|VitePress|Vitepress`,
	// mobile
	`React Native|Flutter|Ionic|Xamarin|SwiftUI|Jetpack Compose|Kotlin Multiplatform|Expo`,
	// web3
	`Ethereum|Solidity|Web3|Blockchain|Bitcoin|NFT|DeFi|Smart Contracts|IPFS|EVM`,
	// games and graphics
	`Unity|Unreal Engine|Godot|Phaser|PixiJS|Three\.js|WebGL`,
	// systems
	`Linux|Unix|Bash|Shell|Zsh|PowerShell|Assembly|x86|ARM|RISC-V|Embedded Systems|IoT|Firmware`,
	// package managers
	`npm|yarn|pnpm|pip|Poetry|conda|Maven|Gradle|sbt|Cargo|NuGet|Composer|Bundler|Go Modules`,
	// bundlers and compilers
	`Webpack|Vite|Rollup|Parcel|esbuild|SWC|Turbopack|Babel|TypeScript Compiler|tsc`,
	// API docs
	`OpenAPI|Swagger|RAML|API Blueprint|Postman|Insomnia|Stoplight|Redoc|Swagger UI`,
	// design
	`Figma|Sketch|Adobe XD|InVision|Framer|Principle|Zeplin`,
	// project management
	`GitHub|GitLab|Jira|Linear|Asana|Trello|Monday|ClickUp|Notion|Confluence`,
}

// actionVerbs are matched as plain substrings of the lower-cased text,
// so "developed" and "development" both yield "develop".
var actionVerbs = []string{
	"implement", "develop", "design", "build", "create", "deploy",
	"optimize", "improve", "enhance", "refactor", "architect",
	"manage", "lead", "collaborate", "integrate", "automate",
}

// commonWords are capitalized words that are not treated as technical terms.
var commonWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"The", "This", "That", "With", "From", "When", "Where", "These", "Those",
		"There", "They", "Then", "Than", "Have", "Were", "Been", "Being", "Into",
		"After", "Before", "During", "While", "About", "Above", "Below", "Under",
		"Over", "Between", "Among", "Through", "Throughout", "Against", "Around",
		"Within", "Without", "Which", "What", "Who", "Whom", "Whose", "Why",
		"How", "Many", "Much", "More", "Most", "Some", "Such", "Same", "Different",
		"Other", "Another", "Each", "Every", "All", "Both", "Either", "Neither",
		"Would", "Could", "Should", "Might", "Must", "Shall", "Will", "Can",
		"May", "Cannot", "Company", "Team",
		"Project", "Work", "Experience", "Years", "Responsibilities", "Skills",
	} {
		commonWords[w] = struct{}{}
	}

	techPatterns = make([]*regexp.Regexp, len(techTerms))
	for i, group := range techTerms {
		techPatterns[i] = regexp.MustCompile(`(?i)\b(?:` + group + `)\b`)
	}
}

var (
	techPatterns       []*regexp.Regexp
	capitalizedPattern = regexp.MustCompile(`\b[A-Z][a-z]{2,}\b`)
)
